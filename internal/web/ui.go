package web

import "html/template"

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Business Lead Scraper</title>
<style>
body{background:#000;color:#00aaff;font-family:Consolas,monospace;text-align:center;padding:30px}
h1{color:#00bfff}
input{padding:8px;margin:5px;border:1px solid #00bfff;background:#0a0a0a;color:#00bfff}
button{background:#00bfff;border:none;padding:12px 25px;font-weight:bold;color:#000;cursor:pointer;border-radius:6px;margin:10px}
button.cat{padding:8px 14px;margin:4px}
#log-box{margin-top:25px;width:90%;max-width:800px;margin:auto;background:#0a0a0a;border:1px solid #00bfff;padding:15px;text-align:left;height:400px;overflow-y:auto;border-radius:10px}
</style>
</head>
<body>
<h1>Business Lead Scraper</h1>
<p>Select categories, then enter ZIP/City + Radius</p>
<div style="max-width:700px;margin:auto;display:flex;flex-wrap:wrap;justify-content:center">
{{range .Categories}}<button class="cat" onclick="toggleCat(this)">{{.}}</button>{{end}}
</div>
<p>
<input id="zip" placeholder="ZIP or City" value="Richmond,VA">
<input id="rad" type="number" placeholder="Radius (miles)" value="5">
</p>
<button onclick="run()">Start Search</button>
<button onclick="fetch('/stop')">Stop</button>
<div id="log-box" style="display:none"></div>
<script>
let selected=[];
function toggleCat(btn){
  const val=btn.textContent;
  if(selected.includes(val)){selected=selected.filter(x=>x!=val);btn.style.background='#00bfff'}
  else{selected.push(val);btn.style.background='#006699'}
}
async function run(){
  const z=document.getElementById('zip').value;
  const r=document.getElementById('rad').value;
  if(selected.length==0){alert('Select at least one category');return}
  document.getElementById('log-box').style.display='block';
  document.getElementById('log-box').innerHTML='<div>Running...</div>';
  await fetch('/run?loc='+encodeURIComponent(z)+'&r='+r+'&types='+encodeURIComponent(selected.join(',')));
}
async function getLogs(){
  const r=await fetch('/logs');
  const j=await r.json();
  const b=document.getElementById('log-box');
  b.innerHTML=j.logs.map(x=>'<div>'+x+'</div>').join('');
  b.scrollTop=b.scrollHeight;
}
setInterval(getLogs,2000);
</script>
</body>
</html>
`))
